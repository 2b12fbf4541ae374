package loader

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/lanenc/internal/tensor"
)

// maxHeaderSize bounds the JSON header a reader will allocate for.
const maxHeaderSize = 100 << 20

const metadataKey = "__metadata__"

// ErrTensorNotFound is returned for a name absent from the header.
var ErrTensorNotFound = errors.New("loader: tensor not found")

// DType is a SafeTensors element type name.
type DType string

// Element types understood by the reader. F16 and BF16 appear in the header
// of many published files but cannot be loaded.
const (
	F16  DType = "F16"
	BF16 DType = "BF16"
	F32  DType = "F32"
	F64  DType = "F64"
	I32  DType = "I32"
	I64  DType = "I64"
	Bool DType = "BOOL"
)

// TensorInfo is one header entry.
type TensorInfo struct {
	DType       DType    `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Size returns the byte length of the tensor data.
func (i TensorInfo) Size() int64 {
	return i.DataOffsets[1] - i.DataOffsets[0]
}

// Header is the decoded JSON header.
type Header struct {
	Metadata map[string]string
	Tensors  map[string]TensorInfo
}

// UnmarshalJSON separates the metadata entry from the tensor entries.
func (h *Header) UnmarshalJSON(data []byte) error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	h.Tensors = make(map[string]TensorInfo, len(entries))
	for name, raw := range entries {
		if name == metadataKey {
			if err := json.Unmarshal(raw, &h.Metadata); err != nil {
				return fmt.Errorf("metadata: %w", err)
			}
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		h.Tensors[name] = info
	}
	return nil
}

// Reader gives random access to the tensors of one file.
type Reader struct {
	src        io.ReaderAt
	closer     io.Closer
	header     Header
	dataOffset int64
}

// OpenSafeTensors opens the file at path and parses its header.
func OpenSafeTensors(path string) (*Reader, error) {
	//nolint:gosec // G304: weight paths come from the user.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// NewReader parses the header found at the start of src.
func NewReader(src io.ReaderAt) (*Reader, error) {
	var prefix [8]byte
	if _, err := src.ReadAt(prefix[:], 0); err != nil {
		return nil, fmt.Errorf("read header size: %w", err)
	}
	size := binary.LittleEndian.Uint64(prefix[:])
	if size > maxHeaderSize {
		return nil, fmt.Errorf("header size %d exceeds %d bytes", size, maxHeaderSize)
	}

	raw := make([]byte, size)
	if _, err := src.ReadAt(raw, 8); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	return &Reader{
		src:        src,
		header:     header,
		dataOffset: 8 + int64(size), //nolint:gosec // bounded by maxHeaderSize
	}, nil
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Metadata returns the free-form string metadata, possibly nil.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns the tensor names in sorted order.
func (r *Reader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo describes the tensor called name.
func (r *Reader) TensorInfo(name string) (TensorInfo, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return TensorInfo{}, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	return info, nil
}

// ReadTensorData returns the raw little-endian bytes of a tensor.
func (r *Reader) ReadTensorData(name string) ([]byte, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	if info.DataOffsets[0] < 0 || info.Size() < 0 {
		return nil, fmt.Errorf("loader: %s: bad data offsets %v", name, info.DataOffsets)
	}

	data := make([]byte, info.Size())
	if _, err := r.src.ReadAt(data, r.dataOffset+info.DataOffsets[0]); err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", name, err)
	}
	return data, nil
}

// LoadTensor reads a tensor into a new RawTensor on device.
func (r *Reader) LoadTensor(name string, device tensor.Device) (*tensor.RawTensor, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	dtype, err := info.DType.dataType()
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", name, err)
	}

	raw, err := tensor.NewRaw(tensor.Shape(info.Shape), dtype, device)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", name, err)
	}
	if int64(raw.ByteSize()) != info.Size() {
		return nil, fmt.Errorf("loader: %s: %s%v needs %d bytes, header gives %d",
			name, info.DType, info.Shape, raw.ByteSize(), info.Size())
	}

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data)
	return raw, nil
}

// LoadAll reads every tensor in the file.
func (r *Reader) LoadAll(device tensor.Device) (map[string]*tensor.RawTensor, error) {
	out := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, name := range r.TensorNames() {
		raw, err := r.LoadTensor(name, device)
		if err != nil {
			return nil, err
		}
		out[name] = raw
	}
	return out, nil
}

func (d DType) dataType() (tensor.DataType, error) {
	switch d {
	case F32:
		return tensor.Float32, nil
	case F64:
		return tensor.Float64, nil
	case I32:
		return tensor.Int32, nil
	case I64:
		return tensor.Int64, nil
	case Bool:
		return tensor.Bool, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %s", d)
	}
}

func dtypeOf(dt tensor.DataType) (DType, error) {
	switch dt {
	case tensor.Float32:
		return F32, nil
	case tensor.Float64:
		return F64, nil
	case tensor.Int32:
		return I32, nil
	case tensor.Int64:
		return I64, nil
	case tensor.Bool:
		return Bool, nil
	default:
		return "", fmt.Errorf("unsupported dtype %v", dt)
	}
}
