package deb

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
)

// hashChunkSize is the read buffer size used while streaming a file through
// the three digest contexts at once.
const hashChunkSize = 64 * 1024

// FileSums is the triple of digests the repository attaches to every file it
// lists: MD5, SHA1, and SHA256, in that order because that is the order APT
// clients expect them in a Release file.
type FileSums struct {
	MD5    [md5.Size]byte
	SHA1   [sha1.Size]byte
	SHA256 [sha256.Size]byte
}

// HashStream reads r to completion, feeding every chunk into MD5, SHA1, and
// SHA256 in lockstep, and returns the total byte length alongside the three
// digests. The length and all three digests describe exactly the same byte
// sequence.
func HashStream(r io.Reader) (int64, FileSums, error) {
	hashes := []hash.Hash{md5.New(), sha1.New(), sha256.New()}
	w := io.MultiWriter(hashes[0], hashes[1], hashes[2])

	n, err := io.CopyBuffer(w, r, make([]byte, hashChunkSize))
	if err != nil {
		return 0, FileSums{}, &IoError{Op: "hash stream", Err: err}
	}

	var sums FileSums
	copy(sums.MD5[:], hashes[0].Sum(nil))
	copy(sums.SHA1[:], hashes[1].Sum(nil))
	copy(sums.SHA256[:], hashes[2].Sum(nil))
	return n, sums, nil
}

// IoError wraps an underlying read failure encountered while hashing or
// otherwise consuming a caller-supplied stream.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }
