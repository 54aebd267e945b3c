package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

func SQLite() fs.FS {
	return sub("sqlite")
}

func Postgres() fs.FS {
	return sub("postgres")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		// dir is a constant that is always embedded
		panic(err)
	}
	return f
}
