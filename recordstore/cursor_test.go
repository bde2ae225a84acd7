package recordstore

import (
	"fmt"
	"strconv"
	"testing"

	. "github.com/fulldump/biff"
)

func populate(rs *RecordStore, n int) {
	for i := 1; i <= n; i++ {
		rs.Insert("key"+strconv.Itoa(i), []byte(strconv.Itoa(i)))
	}
}

func TestSequence(t *testing.T) {
	Environment(func(dir string) {

		rs, err := Create(&Config{Path: dir})
		AssertNil(err)
		defer rs.Close()

		populate(rs, 9)

		cursor := rs.Sequence()
		last := 1
		for cursor.Next() {
			AssertEqual(cursor.Key(), "key"+strconv.Itoa(last))
			AssertEqual(cursor.Value(), []byte(strconv.Itoa(last)))
			last++
		}
		AssertNil(cursor.Err())
		AssertEqual(last, 10)

		// Exhaustion is terminal
		AssertFalse(cursor.Next())
		AssertFalse(cursor.Next())

		// ...until Rewind
		cursor.Rewind()
		AssertTrue(cursor.Next())
		AssertEqual(cursor.Key(), "key1")
	})
}

func TestSequenceRemoveAndRestart(t *testing.T) {
	Environment(func(dir string) {

		rs, err := Create(&Config{Path: dir})
		AssertNil(err)
		defer rs.Close()

		populate(rs, 9)

		cursor := rs.Sequence()
		for cursor.Next() {
		}
		AssertNil(cursor.Err())

		// Remove a key and iterate again: 8 pairs, relative order intact
		AssertNil(rs.Remove("key3"))
		cursor.Rewind()

		last := 1
		for cursor.Next() {
			expected := last
			if last >= 3 {
				expected = last + 1
			}
			AssertEqual(cursor.Key(), "key"+strconv.Itoa(expected))
			AssertEqual(cursor.Value(), []byte(strconv.Itoa(expected)))
			last++
		}
		AssertNil(cursor.Err())
		AssertEqual(last, 9)
	})
}

func TestSequenceConcurrentRemove(t *testing.T) {
	Environment(func(dir string) {

		rs, err := Create(&Config{Path: dir})
		AssertNil(err)
		defer rs.Close()

		populate(rs, 9)

		cursor := rs.Sequence()
		AssertTrue(cursor.Next())
		AssertEqual(cursor.Key(), "key1")
		AssertTrue(cursor.Next())
		AssertEqual(cursor.Key(), "key2")

		// Removing an upcoming key mid-iteration skips it silently
		AssertNil(rs.Remove("key4"))

		expected := []string{"key3", "key5", "key6", "key7", "key8", "key9"}
		for _, key := range expected {
			AssertTrue(cursor.Next())
			AssertEqual(cursor.Key(), key)
		}
		AssertFalse(cursor.Next())
		AssertNil(cursor.Err())
	})
}

func TestSequenceReplaceVisible(t *testing.T) {
	Environment(func(dir string) {

		rs, err := Create(&Config{Path: dir})
		AssertNil(err)
		defer rs.Close()

		populate(rs, 3)

		// The plan is snapshotted but values are read live
		cursor := rs.Sequence()
		AssertNil(rs.Replace("key2", []byte("twenty-two")))

		AssertTrue(cursor.Next())
		AssertTrue(cursor.Next())
		AssertEqual(cursor.Key(), "key2")
		AssertEqual(cursor.Value(), []byte("twenty-two"))
	})
}

func TestSequenceSeek(t *testing.T) {
	Environment(func(dir string) {

		rs, err := Create(&Config{Path: dir})
		AssertNil(err)
		defer rs.Close()

		populate(rs, 9)

		cursor := rs.Sequence()
		AssertNil(cursor.Seek("key4"))
		AssertTrue(cursor.Next())
		AssertEqual(cursor.Key(), "key4")
		AssertTrue(cursor.Next())
		AssertEqual(cursor.Key(), "key5")

		AssertEqual(cursor.Seek("missing"), ErrorKeyNotFound)

		// Failed seek leaves the position alone
		AssertTrue(cursor.Next())
		AssertEqual(cursor.Key(), "key6")
	})
}

func TestCursorIndependence(t *testing.T) {
	Environment(func(dir string) {

		rs, err := Create(&Config{Path: dir})
		AssertNil(err)
		defer rs.Close()

		populate(rs, 5)

		a := rs.Sequence()
		b := rs.Sequence()

		AssertTrue(a.Next())
		AssertTrue(a.Next())
		AssertTrue(a.Next())
		AssertTrue(b.Next())

		AssertEqual(a.Key(), "key3")
		AssertEqual(b.Key(), "key1")

		a.Rewind()
		AssertTrue(a.Next())
		AssertEqual(a.Key(), "key1")
		AssertTrue(b.Next())
		AssertEqual(b.Key(), "key2")
	})
}

func TestSequenceMemoryStore(t *testing.T) {

	rs, err := Create(&Config{Kind: KindMemory})
	AssertNil(err)
	defer rs.Close()

	for i := 1; i <= 3; i++ {
		AssertNil(rs.Insert(fmt.Sprintf("key%d", i), []byte{byte(i)}))
	}

	cursor := rs.Sequence()
	keys := []string{}
	for cursor.Next() {
		keys = append(keys, cursor.Key())
	}
	AssertNil(cursor.Err())
	AssertEqual(keys, []string{"key1", "key2", "key3"})
}
