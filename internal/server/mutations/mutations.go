package mutations

import (
	"embed"
	"io/fs"
)

//go:embed storage/*.sql
var storage embed.FS

// StorageMutations returns all embedded storage files as embed.FS.
func StorageMutations() fs.FS {
	d, err := fs.Sub(storage, "storage")
	if err != nil {
		panic(err)
	}

	return d
}
