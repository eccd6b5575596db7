package vault

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quillvault/quill/internal/testutil"
)

func TestFilesDiscoversMarkdownDeterministically(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithFile("b.md", "b").
		WithFile("a/nested.md", "n").
		WithFile("a.md", "a").
		WithFile("readme.txt", "not markdown").
		WithFile(".quill/backups/old.md", "metadata, skipped").
		WithFile(".hidden/x.md", "hidden, skipped").
		Build()

	files, err := Files(v.Path)
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}

	var got []string
	for _, f := range files {
		got = append(got, f.RelativePath)
	}
	want := []string{"a.md", "a/nested.md", "b.md"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestExpectTypesFollowsDirectoryConvention(t *testing.T) {
	files := []File{
		{RelativePath: "task/a.md"},
		{RelativePath: "task/sub/b.md"},
		{RelativePath: "notes/c.md"},
		{RelativePath: "root.md"},
	}

	ExpectTypes(files, func(name string) bool { return name == "task" })

	want := []string{"task", "task", "", ""}
	for i, f := range files {
		if f.ExpectedType != want[i] {
			t.Errorf("ExpectedType[%s] = %q, want %q", f.RelativePath, f.ExpectedType, want[i])
		}
	}
}

func TestFilesEmptyVault(t *testing.T) {
	files, err := Files(t.TempDir())
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}
