package ofdmtransfer

import "io"

// DataSource supplies payload bytes to the Transmit Pipeline, matching
// §6's "int read(ctx, buf, n)" contract: a positive return means that many
// bytes were written into buf, 0 means "nothing right now, try again"
// (underrun), and io.EOF means end of input.
type DataSource interface {
	ReadPayload(buf []byte) (n int, err error)
}

// DataSink receives payload bytes from the Receive Pipeline, matching
// §6's "int write(ctx, buf, n)" contract. The return value is currently
// unused by the pipeline, mirroring the original's reserved-but-ignored
// status code.
type DataSink interface {
	WritePayload(buf []byte) (n int, err error)
}

// fileDataSource is the default DataSource used when Params.DataSource is
// nil: it reads from an *os.File (or any io.Reader), matching create()'s
// file-backed default versus create_callback()'s user-supplied source.
type fileDataSource struct {
	r io.Reader
}

func (f *fileDataSource) ReadPayload(buf []byte) (int, error) {
	n, err := f.r.Read(buf)
	if err == io.EOF {
		return n, io.EOF
	}
	return n, err
}

// fileDataSink is the default DataSink used when Params.DataSink is nil.
type fileDataSink struct {
	w io.Writer
}

func (f *fileDataSink) WritePayload(buf []byte) (int, error) {
	return f.w.Write(buf)
}
