// Package subtitle understands subtitle file names and content.
//
// Names follow the Jellyfin convention "{video stem}.{lang}[.flag...].{ext}",
// where lang is a canonical ISO 639-2/B code ("por", "eng", "fre"). Numbered
// variants such as ".por2.srt" are alternates for the same language and are
// ranked with Score. IsPortuguese is a word-count heuristic for untagged .srt
// files.
package subtitle
