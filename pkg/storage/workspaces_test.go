package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseWorkspaceList_KeepsFileOrder(t *testing.T) {
	data := []byte(`{"w9":"Zeta","w1":"Alpha","w5":"Mid"}`)

	list, err := ParseWorkspaceList(data)
	if err != nil {
		t.Fatalf("ParseWorkspaceList: %v", err)
	}
	want := WorkspaceList{{"w9", "Zeta"}, {"w1", "Alpha"}, {"w5", "Mid"}}
	if !reflect.DeepEqual(list, want) {
		t.Errorf("list = %v, want %v", list, want)
	}
}

func TestParseWorkspaceList_Invalid(t *testing.T) {
	for _, in := range []string{`not json`, `["w1"]`, `"w1"`} {
		if _, err := ParseWorkspaceList([]byte(in)); err == nil {
			t.Errorf("ParseWorkspaceList(%s) should fail", in)
		}
	}
}

func TestParseWorkspaceList_Empty(t *testing.T) {
	list, err := ParseWorkspaceList([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParseWorkspaceList: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %v", list)
	}
}

func TestWorkspaceList_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), WorkspaceListFile)
	list := WorkspaceList{{"w2", "Team B"}, {"w1", "Team \"A\""}}

	if err := SaveWorkspaceList(path, list); err != nil {
		t.Fatalf("SaveWorkspaceList: %v", err)
	}

	raw, _ := os.ReadFile(path)
	want := "{\n  \"w2\": \"Team B\",\n  \"w1\": \"Team \\\"A\\\"\"\n}"
	if string(raw) != want {
		t.Errorf("file:\n%s\nwant:\n%s", raw, want)
	}

	loaded, err := LoadWorkspaceList(path)
	if err != nil {
		t.Fatalf("LoadWorkspaceList: %v", err)
	}
	if !reflect.DeepEqual(loaded, list) {
		t.Errorf("loaded = %v, want %v", loaded, list)
	}
}

func TestLoadWorkspaceList_Missing(t *testing.T) {
	_, err := LoadWorkspaceList(filepath.Join(t.TempDir(), WorkspaceListFile))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}
