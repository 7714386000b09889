// Command seqstore administers sequence collections: create tables, import
// FASTA files, look records up by accession, and export collections to blob
// storage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"seqstore/pkg/blob"
	"seqstore/pkg/codec"
	"seqstore/pkg/seq"
	"seqstore/pkg/session"
	"seqstore/pkg/store"
)

const usage = `Usage: seqstore [--config FILE] <command> [options]

Commands:
  create   Create a collection table for a record type
  import   Import a FASTA file into a collection
  lookup   Look records up by accession
  export   Export a collection as FASTA to blob storage
`

func main() {
	globals := flag.NewFlagSet("seqstore", flag.ExitOnError)
	configPath := globals.String("config", "", "path to YAML config")
	globals.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := globals.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	args := globals.Args()
	if len(args) == 0 {
		globals.Usage()
		os.Exit(2)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	ctx := context.Background()
	sess, err := session.Open(ctx, cfg.SessionConfig())
	if err != nil {
		fatal(err)
	}
	defer func() { _ = sess.Close() }()
	st := store.New(sess)

	switch args[0] {
	case "create":
		runCreate(ctx, st, args[1:])
	case "import":
		runImport(ctx, st, args[1:])
	case "lookup":
		runLookup(ctx, st, args[1:])
	case "export":
		runExport(ctx, st, cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", args[0], usage)
		os.Exit(2)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "seqstore: %v\n", err)
	os.Exit(1)
}

func runCreate(ctx context.Context, st *store.Store, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	table := fs.String("table", "", "collection table name")
	tag := fs.String("tag", codec.TagDefault, "record type tag")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *table == "" {
		fatal(fmt.Errorf("create: --table required"))
	}
	if err := st.CreateCollection(ctx, *table, *tag); err != nil {
		fatal(err)
	}
	fmt.Printf("created %s (%s)\n", *table, *tag)
}

func runImport(ctx context.Context, st *store.Store, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	table := fs.String("table", "", "collection table name")
	tag := fs.String("tag", codec.TagFASTA, "record type tag")
	file := fs.String("file", "", "FASTA file to import")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *table == "" || *file == "" {
		fatal(fmt.Errorf("import: --table and --file required"))
	}
	f, err := os.Open(*file)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = f.Close() }()
	records, err := seq.ParseFASTA(f)
	if err != nil {
		fatal(err)
	}
	count, err := st.InsertAll(ctx, *table, *tag, records)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("imported %d records into %s\n", count, *table)
}

func runLookup(ctx context.Context, st *store.Store, args []string) {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	table := fs.String("table", "", "collection table name")
	tag := fs.String("tag", codec.TagDefault, "record type tag")
	asJSON := fs.Bool("json", false, "print records as JSON instead of FASTA")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	accessions := fs.Args()
	if *table == "" || len(accessions) == 0 {
		fatal(fmt.Errorf("lookup: --table and at least one accession required"))
	}
	records, err := st.LookupByAccession(ctx, *table, *tag, accessions, store.Options{Order: "accession"})
	if err != nil {
		fatal(err)
	}
	for _, rec := range records {
		if *asJSON {
			raw, err := json.Marshal(rec)
			if err != nil {
				fatal(err)
			}
			fmt.Println(string(raw))
			continue
		}
		if err := seq.WriteFASTA(os.Stdout, rec); err != nil {
			fatal(err)
		}
	}
}

func runExport(ctx context.Context, st *store.Store, cfg Config, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	table := fs.String("table", "", "collection table name")
	tag := fs.String("tag", codec.TagFASTA, "record type tag")
	key := fs.String("key", "", "destination blob key")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *table == "" || *key == "" {
		fatal(fmt.Errorf("export: --table and --key required"))
	}
	if cfg.Blob.Driver != "" {
		os.Setenv("SEQSTORE_BLOB_DRIVER", cfg.Blob.Driver)
	}
	if cfg.Blob.FSRoot != "" {
		os.Setenv("SEQSTORE_BLOB_FS_ROOT", cfg.Blob.FSRoot)
	}
	dst, err := blob.Open(ctx)
	if err != nil {
		fatal(err)
	}
	info, err := st.ExportFASTA(ctx, *table, *tag, dst, *key)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("exported %s to %s (%d bytes)\n", *table, info.Key, info.Size)
}
