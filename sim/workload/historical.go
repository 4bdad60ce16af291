package workload

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/assembly-sim/assembly-sim/sim"
)

// SampleFileExt is the extension of a recorded duration file. Each stream is
// stored as <stream>.dat, e.g. servinsp1.dat.
const SampleFileExt = ".dat"

// SamplePath returns the file holding stream s inside dir.
func SamplePath(dir string, s sim.Stream) string {
	return filepath.Join(dir, string(s)+SampleFileExt)
}

// LoadHistorical reads all six duration streams from dir. Values are
// whitespace-separated decimal numbers in minutes. A missing file or a token
// that is not a number is an error; an empty file yields an empty stream.
func LoadHistorical(dir string) (*sim.HistoricalData, error) {
	data := &sim.HistoricalData{Samples: make(map[sim.Stream][]float64, len(sim.Streams))}
	for _, s := range sim.Streams {
		samples, err := readSamples(SamplePath(dir, s))
		if err != nil {
			return nil, fmt.Errorf("loading stream %s: %w", s, err)
		}
		data.Samples[s] = samples
		logrus.Debugf("Loaded %d samples for %s", len(samples), s)
	}
	return data, nil
}

func readSamples(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanWords)
	var samples []float64
	for scanner.Scan() {
		tok := scanner.Text()
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: sample %d: invalid value %q", path, len(samples)+1, tok)
		}
		samples = append(samples, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return samples, nil
}

// ExportHistorical writes data to dir as one .dat file per stream, one value per
// line. Streams missing from data are written as empty files.
func ExportHistorical(dir string, data *sim.HistoricalData) error {
	if data == nil {
		return fmt.Errorf("nil historical data")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, s := range sim.Streams {
		var b strings.Builder
		for _, v := range data.Samples[s] {
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			b.WriteByte('\n')
		}
		if err := os.WriteFile(SamplePath(dir, s), []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("writing stream %s: %w", s, err)
		}
	}
	return nil
}

var (
	sharedMu   sync.Mutex
	sharedData = make(map[string]*sim.HistoricalData)
)

// SharedHistorical loads dir once per process and returns the same data to every
// caller. The returned data must be treated as read-only: replications share it
// and keep their own replay cursors.
func SharedHistorical(dir string) (*sim.HistoricalData, error) {
	key, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if data, ok := sharedData[key]; ok {
		return data, nil
	}
	data, err := LoadHistorical(key)
	if err != nil {
		return nil, err
	}
	sharedData[key] = data
	logrus.Infof("Historical data loaded from %s", key)
	return data, nil
}
