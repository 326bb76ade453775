package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// File names of the cached workspace list inside the export base.
const (
	WorkspacesFile    = "workspaces.json"
	WorkspaceListFile = "workspace_list.json"
)

// WorkspaceEntry is one id -> name pair of the cached workspace list.
type WorkspaceEntry struct {
	ID   string
	Name string
}

// WorkspaceList is the id -> name mapping persisted as a JSON object. Entry
// order is the order of the object in the file.
type WorkspaceList []WorkspaceEntry

// MarshalJSON encodes the list as an object, keeping entry order.
func (l WorkspaceList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an id -> name object, keeping entry order.
func (l *WorkspaceList) UnmarshalJSON(data []byte) error {
	parsed, err := ParseWorkspaceList(data)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseWorkspaceList decodes a workspace_list.json document.
func ParseWorkspaceList(data []byte) (WorkspaceList, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid workspace list: malformed JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("invalid workspace list: expected a JSON object")
	}

	list := WorkspaceList{}
	root.ForEach(func(key, value gjson.Result) bool {
		list = append(list, WorkspaceEntry{ID: key.String(), Name: value.String()})
		return true
	})
	return list, nil
}

// LoadWorkspaceList reads the cached list. A missing file yields an error
// matching os.ErrNotExist.
func LoadWorkspaceList(path string) (WorkspaceList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace list: %w", err)
	}
	list, err := ParseWorkspaceList(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// SaveWorkspaceList writes the list pretty-printed.
func SaveWorkspaceList(path string, list WorkspaceList) error {
	raw, err := list.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal workspace list: %w", err)
	}
	return WriteRawJSON(path, raw)
}
