package recordstore

import (
	"os"
	"testing"

	. "github.com/fulldump/biff"
)

func TestArchiveReplaceKeepsOrder(t *testing.T) {
	Environment(func(dir string) {

		rs, err := Create(&Config{Path: dir, Kind: KindArchive})
		AssertNil(err)
		AssertNil(rs.Insert("a", []byte("1")))
		AssertNil(rs.Insert("b", []byte("2")))
		AssertNil(rs.Insert("c", []byte("3")))

		// Replace appends to the data file but the key keeps its slot
		AssertNil(rs.Replace("b", []byte("two")))
		AssertNil(rs.Close())

		rs, err = Open(dir)
		AssertNil(err)
		defer rs.Close()

		cursor := rs.Sequence()
		keys := []string{}
		for cursor.Next() {
			keys = append(keys, cursor.Key())
		}
		AssertNil(cursor.Err())
		AssertEqual(keys, []string{"a", "b", "c"})

		value, err := rs.Read("b")
		AssertNil(err)
		AssertEqual(value, []byte("two"))
	})
}

func TestArchiveReinsertGoesLast(t *testing.T) {
	Environment(func(dir string) {

		rs, err := Create(&Config{Path: dir, Kind: KindArchive})
		AssertNil(err)
		defer rs.Close()

		AssertNil(rs.Insert("a", []byte("1")))
		AssertNil(rs.Insert("b", []byte("2")))
		AssertNil(rs.Insert("c", []byte("3")))

		AssertNil(rs.Remove("a"))
		AssertNil(rs.Insert("a", []byte("one again")))

		cursor := rs.Sequence()
		keys := []string{}
		for cursor.Next() {
			keys = append(keys, cursor.Key())
		}
		AssertNil(cursor.Err())
		AssertEqual(keys, []string{"b", "c", "a"})
	})
}

func TestArchiveJournalReplay(t *testing.T) {
	Environment(func(dir string) {

		AssertNil(os.MkdirAll(dir, 0755))

		backend, err := openArchiveBackend(dir)
		AssertNil(err)

		AssertNil(backend.Put("x", []byte("first")))
		AssertNil(backend.Put("y", []byte("second")))
		AssertNil(backend.Delete("x"))
		AssertNil(backend.Put("x", []byte("third")))
		AssertNil(backend.Sync())
		AssertNil(backend.Close())

		backend, err = openArchiveBackend(dir)
		AssertNil(err)
		defer backend.Close()

		AssertEqual(backend.Keys(), []string{"y", "x"})

		value, err := backend.Get("x")
		AssertNil(err)
		AssertEqual(value, []byte("third"))

		value, err = backend.Get("y")
		AssertNil(err)
		AssertEqual(value, []byte("second"))

		_, err = backend.Get("z")
		AssertEqual(err, ErrorKeyNotFound)
	})
}
