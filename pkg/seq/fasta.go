package seq

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Fields populated by ParseFASTA alongside the mandatory accession.
const (
	FieldDescription = "description"
	FieldSequence    = "sequence"
	FieldLength      = "length"
)

const fastaLineWidth = 60

// ParseFASTA reads FASTA text and returns one record per entry. The accession
// is the first whitespace-delimited token of the header line; the remainder
// becomes the description. Sequence lines are concatenated with whitespace
// stripped.
func ParseFASTA(r io.Reader) ([]Record, error) {
	var (
		records []Record
		current Record
		seq     strings.Builder
		line    int
	)
	flush := func() {
		if current == nil {
			return
		}
		s := seq.String()
		current[FieldSequence] = s
		current[FieldLength] = int64(len(s))
		records = append(records, current)
		current = nil
		seq.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "":
			continue
		case strings.HasPrefix(text, ">"):
			flush()
			header := strings.TrimSpace(text[1:])
			if header == "" {
				return nil, fmt.Errorf("line %d: empty fasta header", line)
			}
			accession, description, _ := strings.Cut(header, " ")
			current = Record{
				FieldAccession:   accession,
				FieldDescription: strings.TrimSpace(description),
			}
		default:
			if current == nil {
				return nil, fmt.Errorf("line %d: sequence data before first header", line)
			}
			seq.WriteString(strings.Join(strings.Fields(text), ""))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}
	flush()
	return records, nil
}

// WriteFASTA renders a record as a FASTA entry, wrapping sequence lines at 60
// characters. Records without a sequence field produce a header-only entry.
func WriteFASTA(w io.Writer, rec Record) error {
	accession, err := rec.Accession()
	if err != nil {
		return err
	}
	header := ">" + accession
	if d, ok := rec[FieldDescription].(string); ok && d != "" {
		header += " " + d
	}
	if _, err := io.WriteString(w, header+"\n"); err != nil {
		return err
	}
	s, _ := rec[FieldSequence].(string)
	for len(s) > 0 {
		n := fastaLineWidth
		if n > len(s) {
			n = len(s)
		}
		if _, err := io.WriteString(w, s[:n]+"\n"); err != nil {
			return err
		}
		s = s[n:]
	}
	return nil
}
