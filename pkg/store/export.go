package store

import (
	"bufio"
	"context"
	"io"

	"seqstore/pkg/blob"
	"seqstore/pkg/seq"
)

// ExportFASTA streams every record of a collection, in accession order,
// through the non-materializing fold and writes the FASTA rendering to dst
// under key. The result set is never held in memory; rows flow through a
// pipe into the blob write.
func (s *Store) ExportFASTA(ctx context.Context, table, tag string, dst blob.Store, key string) (blob.Info, error) {
	pr, pw := io.Pipe()
	go func() {
		w := bufio.NewWriter(pw)
		_, err := s.RunQuery(ctx, "SELECT * FROM "+table+" ORDER BY accession", nil, tag, Options{
			Apply: func(rec seq.Record) error {
				return seq.WriteFASTA(w, rec)
			},
		})
		if err == nil {
			err = w.Flush()
		}
		_ = pw.CloseWithError(err)
	}()

	info, err := dst.Put(ctx, key, pr, blob.PutOptions{
		ContentType: "text/x-fasta",
		Metadata:    map[string]string{"table": table, "tag": tag},
	})
	if err != nil {
		// unblock the producer if the write failed before EOF
		_ = pr.CloseWithError(err)
		return blob.Info{}, err
	}
	return info, nil
}
