// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package persist implements the exclusion store's persistence codec
// (§4.6 of the specification): a stable, self-describing binary encoding
// of one ExclusionInterval record, and Save/Load against an embedded
// modernc.org/kv database — the same key/value store the teacher used for
// forward.db/regions.db/reverse.db in cmd/ins/blast.go and
// cmd/ins/fragment.go (kv.Create/kv.Open, BeginTransaction/Commit,
// SeekFirst/Enumerator.Next).
//
// The record encoding (length-prefixed id, optional fixed-width numeric
// fields with an explicit presence flag, all big-endian) is a direct
// adaptation of internal/store/store.go's MarshalBlastRecordKey /
// UnmarshalBlastRecordKey pair from the teacher repository, generalized
// from a fixed BLAST-hit key shape to an ExclusionInterval's ten optional
// fields.
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"modernc.org/kv"

	"github.com/pgarrett-scripps/exclusionms-go/internal/errs"
	"github.com/pgarrett-scripps/exclusionms-go/internal/model"
	"github.com/pgarrett-scripps/exclusionms-go/internal/optional"
)

var order = binary.BigEndian

// formatTag and version identify the on-disk record format. Load checks
// both and fails loudly on a mismatch, per §4.6.
const (
	formatTag     = "EXMS"
	formatVersion = 1
)

// metaKey is the reserved kv key holding the format tag and version.
var metaKey = []byte{0, 0, 0, 0, 0, 0, 0, 0}

func recordKey(seq uint64) []byte {
	var b [8]byte
	order.PutUint64(b[:], seq+1) // +1 so no record ever collides with metaKey (0)
	return b[:]
}

func keyCompare(x, y []byte) int { return bytes.Compare(x, y) }

// marshalInterval encodes iv as a length-prefixed record: id (uint32
// length + UTF-8 bytes), charge (presence byte + int32), and each of the
// eight numeric bounds (presence byte + float64), all big-endian.
func marshalInterval(iv model.Interval) []byte {
	var buf bytes.Buffer

	id, _ := iv.ID.Get() // Add requires a non-null id; query-shaped intervals may be absent.
	writeUint32(&buf, uint32(len(id)))
	buf.WriteString(id)

	writeOptInt(&buf, iv.Charge)
	writeOptFloat(&buf, iv.MinMass)
	writeOptFloat(&buf, iv.MaxMass)
	writeOptFloat(&buf, iv.MinRT)
	writeOptFloat(&buf, iv.MaxRT)
	writeOptFloat(&buf, iv.MinOOK0)
	writeOptFloat(&buf, iv.MaxOOK0)
	writeOptFloat(&buf, iv.MinIntensity)
	writeOptFloat(&buf, iv.MaxIntensity)

	return buf.Bytes()
}

func unmarshalInterval(data []byte) (model.Interval, error) {
	r := bytes.NewReader(data)

	n, err := readUint32(r)
	if err != nil {
		return model.Interval{}, err
	}
	idBytes := make([]byte, n)
	if _, err := io.ReadFull(r, idBytes); err != nil {
		return model.Interval{}, err
	}

	var iv model.Interval
	if n > 0 {
		iv.ID = optional.OfString(string(idBytes))
	}

	if iv.Charge, err = readOptInt(r); err != nil {
		return model.Interval{}, err
	}
	fields := []*optional.Float{
		&iv.MinMass, &iv.MaxMass,
		&iv.MinRT, &iv.MaxRT,
		&iv.MinOOK0, &iv.MaxOOK0,
		&iv.MinIntensity, &iv.MaxIntensity,
	}
	for _, f := range fields {
		if *f, err = readOptFloat(r); err != nil {
			return model.Interval{}, err
		}
	}
	return iv, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	order.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return order.Uint32(b[:]), nil
}

func writeOptFloat(buf *bytes.Buffer, f optional.Float) {
	v, ok := f.Get()
	if !ok {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	var b [8]byte
	order.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

func readOptFloat(r io.Reader) (optional.Float, error) {
	var present [1]byte
	if _, err := io.ReadFull(r, present[:]); err != nil {
		return optional.NoFloat, err
	}
	if present[0] == 0 {
		return optional.NoFloat, nil
	}
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return optional.NoFloat, err
	}
	return optional.OfFloat(math.Float64frombits(order.Uint64(b[:]))), nil
}

func writeOptInt(buf *bytes.Buffer, i optional.Int) {
	v, ok := i.Get()
	if !ok {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	var b [4]byte
	order.PutUint32(b[:], uint32(int32(v)))
	buf.Write(b[:])
}

func readOptInt(r io.Reader) (optional.Int, error) {
	var present [1]byte
	if _, err := io.ReadFull(r, present[:]); err != nil {
		return optional.NoInt, err
	}
	if present[0] == 0 {
		return optional.NoInt, nil
	}
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return optional.NoInt, err
	}
	return optional.OfInt(int(int32(order.Uint32(b[:])))), nil
}

// Save writes every interval in ivs to a fresh kv database at path,
// overwriting any existing file there (the source's save silently
// overwrites; see §9).
func Save(path string, ivs []model.Interval) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &errs.PersistenceError{Op: "save", Err: err}
	}

	db, err := kv.Create(path, &kv.Options{Compare: keyCompare})
	if err != nil {
		return &errs.PersistenceError{Op: "save", Err: err}
	}
	defer db.Close()

	meta := make([]byte, len(formatTag)+1)
	copy(meta, formatTag)
	meta[len(formatTag)] = formatVersion
	if err := db.Set(metaKey, meta); err != nil {
		return &errs.PersistenceError{Op: "save", Err: err}
	}

	const batch = 256
	for i, iv := range ivs {
		if i%batch == 0 {
			if err := db.BeginTransaction(); err != nil {
				return &errs.PersistenceError{Op: "save", Err: err}
			}
		}
		if err := db.Set(recordKey(uint64(i)), marshalInterval(iv)); err != nil {
			return &errs.PersistenceError{Op: "save", Err: err}
		}
		if i%batch == batch-1 || i == len(ivs)-1 {
			if err := db.Commit(); err != nil {
				return &errs.PersistenceError{Op: "save", Err: err}
			}
		}
	}
	if len(ivs) == 0 {
		if err := db.BeginTransaction(); err != nil {
			return &errs.PersistenceError{Op: "save", Err: err}
		}
		if err := db.Commit(); err != nil {
			return &errs.PersistenceError{Op: "save", Err: err}
		}
	}
	return nil
}

// Load reads every interval record from the kv database at path. It
// returns PersistenceError on any I/O or decode failure, including a
// format-tag or version mismatch; the caller is responsible for not
// touching its live state until Load returns successfully (this function
// builds no state of its own beyond the returned slice).
func Load(path string) ([]model.Interval, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &errs.NotFound{Name: path}
		}
		return nil, &errs.PersistenceError{Op: "load", Err: err}
	}

	db, err := kv.Open(path, &kv.Options{Compare: keyCompare})
	if err != nil {
		return nil, &errs.PersistenceError{Op: "load", Err: err}
	}
	defer db.Close()

	meta, err := db.Get(nil, metaKey)
	if err != nil {
		return nil, &errs.PersistenceError{Op: "load", Err: err}
	}
	if err := checkMeta(meta); err != nil {
		return nil, &errs.PersistenceError{Op: "load", Err: err}
	}

	var ivs []model.Interval
	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, &errs.PersistenceError{Op: "load", Err: err}
	}
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, &errs.PersistenceError{Op: "load", Err: err}
		}
		if bytes.Equal(k, metaKey) {
			continue
		}
		iv, err := unmarshalInterval(v)
		if err != nil {
			return nil, &errs.PersistenceError{Op: "load", Err: err}
		}
		ivs = append(ivs, iv)
	}
	return ivs, nil
}

func checkMeta(meta []byte) error {
	if len(meta) != len(formatTag)+1 || string(meta[:len(formatTag)]) != formatTag {
		return fmt.Errorf("bad format tag")
	}
	if meta[len(formatTag)] != formatVersion {
		return fmt.Errorf("unsupported format version %d (want %d)", meta[len(formatTag)], formatVersion)
	}
	return nil
}
