// Package renamer plans and applies the filesystem operations that bring a
// media library into the Jellyfin layout.
//
// Planning is a pure function of a scan snapshot plus configuration: videos
// are planned first, then companion subtitles, variant groups, extra files and
// finally non-media cleanup. Each later phase reads the destinations the
// earlier phases decided. Execution applies the resulting list in order and
// never overwrites an existing file.
package renamer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// OpType is the kind of filesystem change an Operation performs.
type OpType int

const (
	OpRename OpType = iota
	OpMove
	OpMoveRename
	OpDelete
)

func (t OpType) String() string {
	switch t {
	case OpRename:
		return "rename"
	case OpMove:
		return "move"
	case OpMoveRename:
		return "move_rename"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("OpType(%d)", int(t))
	}
}

// ParseOpType is the inverse of String.
func ParseOpType(s string) (OpType, error) {
	switch s {
	case "rename":
		return OpRename, nil
	case "move":
		return OpMove, nil
	case "move_rename":
		return OpMoveRename, nil
	case "delete":
		return OpDelete, nil
	}
	return 0, fmt.Errorf("unknown operation type %q", s)
}

func (t OpType) MarshalJSON() ([]byte, error) {
	switch t {
	case OpRename, OpMove, OpMoveRename, OpDelete:
		return json.Marshal(t.String())
	}
	return nil, fmt.Errorf("invalid operation type %d", int(t))
}

func (t *OpType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOpType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Operation is one planned change. Deletes carry Destination == Source.
type Operation struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Type        OpType `json:"type"`
	Reason      string `json:"reason"`
}

// WillOverwrite reports whether applying op would replace an existing file.
func (op Operation) WillOverwrite() bool {
	if op.Type == OpDelete || op.Destination == op.Source {
		return false
	}
	_, err := os.Lstat(op.Destination)
	return err == nil
}

// Conflict is an operation the planner dropped because its destination was
// already claimed or already present.
type Conflict struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Reason      string `json:"reason"`
}

// Plan is the result of one planning pass.
type Plan struct {
	Root       string      `json:"root"`
	Operations []Operation `json:"operations"`
	Conflicts  []Conflict  `json:"conflicts,omitempty"`
}

// Counts tallies operations by type.
func (p *Plan) Counts() map[OpType]int {
	counts := make(map[OpType]int, 4)
	for _, op := range p.Operations {
		counts[op.Type]++
	}
	return counts
}

// Stats are the aggregate counters returned by an execution.
type Stats struct {
	Renamed int `json:"renamed"`
	Moved   int `json:"moved"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Cleaned int `json:"cleaned"`
}

// classify picks rename, move or move_rename for a relocation.
func classify(src, dst string) OpType {
	dirChanged := filepath.Dir(src) != filepath.Dir(dst)
	nameChanged := filepath.Base(src) != filepath.Base(dst)
	switch {
	case dirChanged && nameChanged:
		return OpMoveRename
	case dirChanged:
		return OpMove
	default:
		return OpRename
	}
}
