//
// Copyright 2024 - 2026 Flight-HAL Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package cache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// formatMagic identifies the persisted-cache layout version (§6); readers
// must reject anything else rather than guess at a layout.
const formatMagic uint32 = 0x48414C31 // "HAL1"

// Record is one persisted (key, value, metadata) triple.
type Record struct {
	Key      string
	Value    []byte
	Metadata []byte
}

// FileStore is the persistent-cache collaborator (§6): load/save/clear/
// set_path/size over an afero filesystem, so tests can swap in
// afero.NewMemMapFs() the way the teacher's appFs does for linuxUtils.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore builds a FileStore rooted at path on fs.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

func (f *FileStore) SetPath(path string) { f.path = path }

func (f *FileStore) Size() (int64, error) {
	info, err := f.fs.Stat(f.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f *FileStore) Clear() error {
	err := f.fs.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Save writes records as a length-prefixed sequence behind the magic
// header. Persistence failures are returned as errors and never corrupt
// in-memory state (§4.H) since they never touch the Store directly.
func (f *FileStore) Save(records []Record) error {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.BigEndian, formatMagic); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(records))); err != nil {
		return err
	}

	for _, r := range records {
		if err := writeLenPrefixed(&buf, []byte(r.Key)); err != nil {
			return err
		}
		if err := writeLenPrefixed(&buf, r.Value); err != nil {
			return err
		}
		if err := writeLenPrefixed(&buf, r.Metadata); err != nil {
			return err
		}
	}

	return afero.WriteFile(f.fs, f.path, buf.Bytes(), 0644)
}

// Load reads back what Save wrote, rejecting any file with an unrecognized
// magic header.
func (f *FileStore) Load() ([]Record, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(data)

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, err
	}
	if magic != formatMagic {
		return nil, fmt.Errorf("cache: unrecognized persisted format magic 0x%x", magic)
	}

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}

	records := make([]Record, 0, count)
	for i := uint32(0); i < count; i++ {
		key, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		value, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		metadata, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{Key: string(key), Value: value, Metadata: metadata})
	}

	return records, nil
}

func writeLenPrefixed(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
