package vectorindex

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Two artifacts per corpus: the raw vector matrix (gob, binary) and the
// index structure (JSON: dimension, content hash, documents).
const (
	matrixFile    = "embeddings.bin"
	structureFile = "index.json"
)

type indexStructure struct {
	Dim       int        `json:"dim"`
	Hash      string     `json:"hash"`
	Documents []Document `json:"documents"`
}

type loadedIndex struct {
	Dim     int
	Hash    string
	Docs    []Document
	Vectors [][]float32
}

func persist(dir string, docs []Document, vectors [][]float32, dim int, hash string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vectors); err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, matrixFile), buf.Bytes(), 0644); err != nil {
		return err
	}

	structure := indexStructure{Dim: dim, Hash: hash, Documents: docs}
	data, err := json.Marshal(structure)
	if err != nil {
		return fmt.Errorf("encode structure: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, structureFile), data, 0644)
}

func load(dir string) (*loadedIndex, error) {
	matrixData, err := os.ReadFile(filepath.Join(dir, matrixFile))
	if err != nil {
		return nil, err
	}
	structData, err := os.ReadFile(filepath.Join(dir, structureFile))
	if err != nil {
		return nil, err
	}

	var vectors [][]float32
	if err := gob.NewDecoder(bytes.NewReader(matrixData)).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("corrupt matrix file: %w", err)
	}

	var structure indexStructure
	if err := json.Unmarshal(structData, &structure); err != nil {
		return nil, fmt.Errorf("corrupt structure file: %w", err)
	}

	if len(vectors) != len(structure.Documents) {
		return nil, fmt.Errorf("matrix/structure length mismatch: %d vs %d", len(vectors), len(structure.Documents))
	}

	return &loadedIndex{
		Dim:     structure.Dim,
		Hash:    structure.Hash,
		Docs:    structure.Documents,
		Vectors: vectors,
	}, nil
}

// contentHash fingerprints the document set (content and name, in order) so
// a persisted index is never trusted for a corpus it was not built from.
func contentHash(docs []Document) string {
	h := sha256.New()
	for _, d := range docs {
		h.Write([]byte(d.Content))
		h.Write([]byte{0})
		h.Write([]byte(d.Name()))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
