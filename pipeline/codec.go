package pipeline

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode() cbor.DecMode {
	// a summary holds up to capacity records, above the library default
	dm, err := cbor.DecOptions{MaxArrayElements: math.MaxInt32}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

// EncodeSummary encodes s as a deterministic CBOR frame.
func EncodeSummary(s Summary) ([]byte, error) {
	return encMode.Marshal(s)
}

// DecodeSummary decodes a frame produced by EncodeSummary.
func DecodeSummary(data []byte) (Summary, error) {
	var s Summary
	if err := decMode.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("failed to decode summary: %w", err)
	}
	return s, nil
}

// PartFileName names the file holding a partition's summary.
func PartFileName(partition int) string {
	return fmt.Sprintf("part-%05d.cbor", partition)
}

// WriteSummaryFile writes s to path as a single CBOR frame.
func WriteSummaryFile(path string, s Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return encMode.NewEncoder(f).Encode(s)
}

// ReadSummaryFile reads a summary written by WriteSummaryFile.
func ReadSummaryFile(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	var s Summary
	if err := decMode.NewDecoder(f).Decode(&s); err != nil {
		return Summary{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return s, nil
}
