package recording

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/hopsim"
	"github.com/sarchlab/hopsim/timemodel"
	"github.com/sarchlab/hopsim/transfer"
)

func newSimulation(conn hopsim.ConnMode, numHops int) *transfer.Simulation {
	cfg := hopsim.DefaultConfig()
	cfg.Count = 10
	cfg.Size = 100
	cfg.NumHops = numHops
	cfg.Bandwidth = 1000
	cfg.HopMode = hopsim.HopByHop
	cfg.Conn = conn

	s, err := transfer.NewSimulation(cfg, &timemodel.OptimisticEstimator{})
	Expect(err).ToNot(HaveOccurred())

	return s
}

var _ = Describe("ProgressPrinter", func() {
	It("should print the progress of a run", func() {
		buf := new(bytes.Buffer)
		s := newSimulation(hopsim.ConnAlwaysUp, 2)
		s.AcceptHook(NewProgressPrinter(buf, s.Config().MessageBits()))

		_, err := s.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(buf.String()).To(Equal("initial link states:\n" +
			"\t0: true\n" +
			"\t1: true\n" +
			"[0]: trying to move last chunk\n" +
			"[0]: 8 seconds elapsed... trying to move data\n" +
			"[0]: moving 8000/8000 bits (10 msgs) from 0 to 1\n"))
	})

	It("should print link changes", func() {
		buf := new(bytes.Buffer)
		s := newSimulation(hopsim.ConnSequential, 3)
		s.AcceptHook(NewProgressPrinter(buf, s.Config().MessageBits()))

		_, err := s.Run()

		Expect(err).ToNot(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("\t2: false\n"))
		Expect(buf.String()).To(ContainSubstring("[60]: closing link 1\n"))
		Expect(buf.String()).To(ContainSubstring("[60]: opening link 2\n"))
		Expect(buf.String()).To(ContainSubstring(
			"[60]: moving 8000/8000 bits (10 msgs) from 1 to 2\n"))
	})
})

var _ = Describe("RunRecorder", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should write records to a CSV file", func() {
		path := filepath.Join(dir, "run.csv")
		backend := NewCSVBackend(path)
		Expect(backend.Init()).To(Succeed())
		recorder := NewRunRecorder(backend)
		s := newSimulation(hopsim.ConnAlwaysUp, 2)
		s.AcceptHook(recorder)

		_, err := s.Run()
		Expect(err).ToNot(HaveOccurred())
		Expect(backend.Close()).To(Succeed())

		f, err := os.Open(path)
		Expect(err).ToNot(HaveOccurred())
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		Expect(err).ToNot(HaveOccurred())

		Expect(rows).To(HaveLen(4))
		Expect(rows[0][0]).To(Equal("RunID"))
		Expect(rows[1][2]).To(Equal(KindStart))
		Expect(rows[2]).To(Equal([]string{
			recorder.RunID(), "0", KindTransfer, "0", "1", "8000", "",
		}))
		Expect(rows[3][:3]).To(Equal([]string{recorder.RunID(), "8", KindEnd}))
		Expect(rows[3][6]).To(Equal("completed after 1 events"))
	})

	It("should give every recorder its own run ID", func() {
		a := NewRunRecorder(NewCSVBackend(filepath.Join(dir, "a.csv")))
		b := NewRunRecorder(NewCSVBackend(filepath.Join(dir, "b.csv")))

		Expect(a.RunID()).ToNot(Equal(b.RunID()))
		Expect(a.RunID()).To(HaveLen(20))
	})

	It("should write records to a SQLite database", func() {
		path := filepath.Join(dir, "run.sqlite")
		backend := NewSQLiteBackend(path)
		Expect(backend.Init()).To(Succeed())
		recorder := NewRunRecorder(backend)
		s := newSimulation(hopsim.ConnSequential, 3)
		s.AcceptHook(recorder)

		_, err := s.Run()
		Expect(err).ToNot(HaveOccurred())
		Expect(backend.Close()).To(Succeed())

		db, err := sql.Open("sqlite3", path)
		Expect(err).ToNot(HaveOccurred())
		defer db.Close()

		var links, transfers int
		err = db.QueryRow(
			"SELECT COUNT(*) FROM run_records WHERE run_id = ? AND kind = ?",
			recorder.RunID(), KindLink).Scan(&links)
		Expect(err).ToNot(HaveOccurred())
		err = db.QueryRow(
			"SELECT COUNT(*) FROM run_records WHERE run_id = ? AND kind = ?",
			recorder.RunID(), KindTransfer).Scan(&transfers)
		Expect(err).ToNot(HaveOccurred())

		Expect(links).To(Equal(2))
		Expect(transfers).To(Equal(2))
	})
})
