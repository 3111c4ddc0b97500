package embed

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrUnknownWord is returned when requested words are missing from the vector file
var ErrUnknownWord = errors.New("word not in vector file")

// Model holds the vectors read from a fastText text file
type Model struct {
	Dim int
	// Vectors of the requested words
	Vectors map[string][]float64
	// Leading holds the first vectors of the file, in file order
	Leading [][]float64
}

// Load scans a fastText .vec file (optionally gzip compressed) for the given
// words and keeps the first leading vectors of the file besides. Only lines
// that are needed get parsed.
func Load(path string, words []string, leading int) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[Load] failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("[Load] %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	m, err := read(r, words, leading)
	if err != nil {
		return nil, fmt.Errorf("[Load] %s: %w", path, err)
	}

	return m, nil
}

func read(r io.Reader, words []string, leading int) (*Model, error) {
	wanted := make(map[string]bool, len(words))
	for _, w := range words {
		wanted[w] = true
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("empty vector file")
	}
	header := strings.Fields(sc.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("bad header %q, expected \"<count> <dim>\"", sc.Text())
	}
	dim, err := strconv.Atoi(header[1])
	if err != nil || dim <= 0 {
		return nil, fmt.Errorf("bad dimension %q", header[1])
	}

	m := &Model{Dim: dim, Vectors: make(map[string][]float64, len(words))}

	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()

		sp := strings.IndexByte(text, ' ')
		if sp <= 0 {
			continue
		}
		word := text[:sp]

		keep := len(m.Leading) < leading
		_, seen := m.Vectors[word]
		want := wanted[word] && !seen
		if !keep && !want {
			if len(m.Vectors) == len(wanted) {
				break
			}
			continue
		}

		vec, err := parseVector(text[sp+1:], dim)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if keep {
			m.Leading = append(m.Leading, vec)
		}
		if want {
			m.Vectors[word] = vec
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

func parseVector(s string, dim int) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) != dim {
		return nil, fmt.Errorf("%d values, expected %d", len(fields), dim)
	}

	vec := make([]float64, dim)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		vec[i] = v
	}

	return vec, nil
}

// Lookup returns the vectors of words in order. Every missing word is listed in the error.
func (m *Model) Lookup(words []string) ([][]float64, error) {
	out := make([][]float64, len(words))

	var missing []string
	for i, w := range words {
		v, ok := m.Vectors[w]
		if !ok {
			missing = append(missing, w)
			continue
		}
		out[i] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("[Lookup] %w: %s", ErrUnknownWord, strings.Join(missing, ", "))
	}

	return out, nil
}
