package storage

import (
	"io"
	"strings"
	"testing"
)

func TestFSStore_RoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key := "certificates/stu-1/CERT-1-0001.txt"
	if _, err := s.Put(key, strings.NewReader("certificate body")); err != nil {
		t.Fatal(err)
	}

	rc, err := s.Get(key)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "certificate body" {
		t.Errorf("content = %q", data)
	}
}

func TestFSStore_RejectsEscapingKeys(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"", "../outside.txt", "a/../../outside.txt", "/etc/passwd"} {
		if _, err := s.Put(key, strings.NewReader("x")); err == nil {
			t.Errorf("Put(%q) accepted a key outside the store", key)
		}
		if _, err := s.Get(key); err == nil {
			t.Errorf("Get(%q) accepted a key outside the store", key)
		}
	}
}
