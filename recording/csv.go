package recording

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/tebeka/atexit"
)

// CSVBackend stores records in a CSV file.
type CSVBackend struct {
	path   string
	file   *os.File
	writer *csv.Writer

	records    []Record
	bufferSize int
	closed     bool
}

// NewCSVBackend creates a new CSVBackend.
func NewCSVBackend(path string) *CSVBackend {
	return &CSVBackend{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the CSV file. If the file already exists, it will be
// overwritten. The file is flushed and closed when the program exits through
// atexit.
func (b *CSVBackend) Init() error {
	file, err := os.Create(b.path)
	if err != nil {
		return err
	}

	b.file = file
	b.writer = csv.NewWriter(file)

	err = b.writer.Write([]string{
		"RunID", "Time", "Kind", "From", "To", "Bits", "What",
	})
	if err != nil {
		return err
	}

	atexit.Register(func() {
		err := b.Close()
		if err != nil {
			panic(err)
		}
	})

	return nil
}

// Write buffers a record.
func (b *CSVBackend) Write(r Record) {
	b.records = append(b.records, r)
	if len(b.records) >= b.bufferSize {
		b.Flush()
	}
}

// Flush writes the buffered records to the file.
func (b *CSVBackend) Flush() {
	if b.closed {
		return
	}

	for _, r := range b.records {
		err := b.writer.Write([]string{
			r.RunID,
			strconv.FormatFloat(r.Time, 'f', -1, 64),
			r.Kind,
			strconv.Itoa(r.From),
			strconv.Itoa(r.To),
			strconv.FormatFloat(r.Bits, 'f', -1, 64),
			r.What,
		})
		if err != nil {
			panic(err)
		}
	}

	b.writer.Flush()
	if err := b.writer.Error(); err != nil {
		panic(err)
	}

	b.records = nil
}

// Close flushes the remaining records and closes the file.
func (b *CSVBackend) Close() error {
	if b.closed {
		return nil
	}

	b.Flush()
	b.closed = true

	return b.file.Close()
}
