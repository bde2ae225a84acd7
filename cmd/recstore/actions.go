package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulldump/recstore/configuration"
	"github.com/fulldump/recstore/recordstore"
)

func run(c *configuration.Configuration) error {

	switch c.Action {
	case "create":
		return runCreate(c)
	case "keys":
		return runKeys(c)
	case "dump":
		return runDump(c)
	case "describe":
		return runDescribe(c)
	case "merge":
		return runMerge(c)
	case "delete":
		return recordstore.Delete(c.Path)
	}

	return fmt.Errorf("unknown action '%s'", c.Action)
}

func runCreate(c *configuration.Configuration) error {

	rs, err := recordstore.Create(&recordstore.Config{
		Path:        c.Path,
		Kind:        c.Kind,
		Description: c.Description,
		Compression: c.Compression,
	})
	if err != nil {
		return err
	}
	defer rs.Close()

	if c.Ingest != "" {
		entries, err := os.ReadDir(c.Ingest)
		if err != nil {
			return fmt.Errorf("read ingest directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			value, err := os.ReadFile(filepath.Join(c.Ingest, entry.Name()))
			if err != nil {
				return err
			}
			err = rs.Insert(entry.Name(), value)
			if err != nil {
				return fmt.Errorf("insert '%s': %w", entry.Name(), err)
			}
		}
	}

	return rs.Sync()
}

func runKeys(c *configuration.Configuration) error {

	rs, err := recordstore.Open(c.Path)
	if err != nil {
		return err
	}
	defer rs.Close()

	cursor := rs.Sequence()
	for cursor.Next() {
		fmt.Println(cursor.Key())
	}

	return cursor.Err()
}

func runDump(c *configuration.Configuration) error {

	rs, err := recordstore.Open(c.Path)
	if err != nil {
		return err
	}
	defer rs.Close()

	err = os.MkdirAll(c.Out, 0755)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	cursor := rs.Sequence()
	for cursor.Next() {
		err = os.WriteFile(filepath.Join(c.Out, cursor.Key()), cursor.Value(), 0666)
		if err != nil {
			return fmt.Errorf("write '%s': %w", cursor.Key(), err)
		}
	}

	return cursor.Err()
}

func runDescribe(c *configuration.Configuration) error {

	rs, err := recordstore.Open(c.Path)
	if err != nil {
		return err
	}
	defer rs.Close()

	if c.Description != "" {
		err = rs.ChangeDescription(c.Description)
		if err != nil {
			return err
		}
	}

	fmt.Println("path:", rs.Path())
	fmt.Println("kind:", rs.Kind())
	fmt.Println("description:", rs.Description())
	fmt.Println("records:", rs.Count())
	fmt.Println("space used:", rs.SpaceUsed())

	return nil
}

// runMerge copies every record of every source store into the target,
// creating the target when it does not exist yet. A key present in more
// than one store fails the merge.
func runMerge(c *configuration.Configuration) error {

	if c.Sources == "" {
		return fmt.Errorf("merge needs at least one source store")
	}

	target, err := recordstore.Open(c.Path)
	if errors.Is(err, recordstore.ErrorStoreNotFound) {
		target, err = recordstore.Create(&recordstore.Config{
			Path:        c.Path,
			Kind:        c.Kind,
			Description: c.Description,
			Compression: c.Compression,
		})
	}
	if err != nil {
		return err
	}
	defer target.Close()

	for _, pathname := range strings.Split(c.Sources, ",") {
		err := mergeOne(target, strings.TrimSpace(pathname))
		if err != nil {
			return err
		}
	}

	return target.Sync()
}

func mergeOne(target *recordstore.RecordStore, pathname string) error {

	source, err := recordstore.Open(pathname)
	if err != nil {
		return err
	}
	defer source.Close()

	cursor := source.Sequence()
	for cursor.Next() {
		err = target.Insert(cursor.Key(), cursor.Value())
		if err != nil {
			return fmt.Errorf("insert '%s': %w", cursor.Key(), err)
		}
	}

	return cursor.Err()
}
