// Package blob is the export-target abstraction: a minimal S3-like store
// that collection exports are written to. Drivers live under internal/blob;
// every other package depends on this interface only.
package blob

import (
	"context"
	"fmt"
	"os"

	"seqstore/internal/blob/core"
	fsdriver "seqstore/internal/blob/fs"
	memdriver "seqstore/internal/blob/memory"
	s3driver "seqstore/internal/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface blob backends implement.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// NewFilesystem returns a filesystem-backed store rooted at root.
func NewFilesystem(root string) (Store, error) { return fsdriver.New(root) }

// NewMemory returns an in-memory store.
func NewMemory() Store { return memdriver.New() }

// OpenS3FromEnv returns an S3-backed store configured from the environment
// (variables documented in internal/blob/s3).
func OpenS3FromEnv(ctx context.Context) (Store, error) { return s3driver.OpenFromEnv(ctx) }

// Open selects a driver using environment variables:
//
//	SEQSTORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	SEQSTORE_BLOB_FS_ROOT: directory root when driver=fs
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("SEQSTORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("SEQSTORE_BLOB_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
