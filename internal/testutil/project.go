package testutil

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// ModelsSource is a small declarative module with one diagnostic per rule:
// SA202 at 6:11, SA201 at 7:4 and SA203 at 8:50 (0-based columns).
const ModelsSource = `from sqlalchemy.orm import DynamicMapped, Mapped, mapped_column, relationship


class User(Base):
    __tablename__ = "user"
    posts: DynamicMapped["Post"] = relationship()
    id = mapped_column(primary_key=True)
    group: Mapped["Group"] = relationship(backref="users")
`

// CleanSource is a declarative module without diagnostics.
const CleanSource = `from sqlalchemy.orm import Mapped, mapped_column


class User(Base):
    __tablename__ = "user"
    id: Mapped[int] = mapped_column(primary_key=True)
`

// WriteProject creates a temporary directory holding files, keyed by
// slash-separated relative path, and returns its root.
func WriteProject(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range slices.Sorted(maps.Keys(files)) {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(files[name]), 0o600))
	}
	return root
}
