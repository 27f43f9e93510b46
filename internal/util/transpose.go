package util

import (
	"encoding/binary"
	"runtime"
	"sync"
)

const blockWidth = 64

// swapLevels drives the recursive 64x64 transpose: at each level,
// rows i and i+width trade the bits selected by mask, from the
// 32x32 quadrants down to single bits.
var swapLevels = [...]struct {
	width int
	mask  uint64
}{
	{32, 0xFFFFFFFF00000000},
	{16, 0xFFFF0000FFFF0000},
	{8, 0xFF00FF00FF00FF00},
	{4, 0xF0F0F0F0F0F0F0F0},
	{2, 0xCCCCCCCCCCCCCCCC},
	{1, 0xAAAAAAAAAAAAAAAA},
}

// A bitBlock is a 64 by 64 bit matrix. Row r is held in one uint64
// with column c at bit c, which matches the little endian load of
// eight packed bytes.
type bitBlock [blockWidth]uint64

// TransposeBits transposes a bit matrix stored as len(matrix) packed
// rows, each holding at least ncols bits numbered least significant
// bit first. It returns ncols rows of PackedLen(len(matrix)) bytes.
// Bits past the last input row are zero in the output. All rows must
// share the same length, or TransposeBits panics.
//
// The matrix is cut into 64x64 blocks which are transposed in
// registers. The block columns are split among a pool of workers,
// each of which owns a disjoint set of output rows. The last worker
// picks up the blocks left over by the integer division.
func TransposeBits(matrix [][]byte, ncols int) [][]byte {
	nrows := len(matrix)
	if nrows > 0 {
		rowLen := len(matrix[0])
		if rowLen < PackedLen(ncols) {
			panic(ErrByteLengthMissMatch)
		}
		for _, row := range matrix {
			if len(row) != rowLen {
				panic(ErrByteLengthMissMatch)
			}
		}
	}

	trans := make([][]byte, ncols)
	outLen := PackedLen(nrows)
	for r := range trans {
		trans[r] = make([]byte, outLen)
	}

	if nrows == 0 || ncols == 0 {
		return trans
	}

	nBlockRows := (nrows + blockWidth - 1) / blockWidth
	nBlockCols := (ncols + blockWidth - 1) / blockWidth

	nworkers := runtime.GOMAXPROCS(0)
	workerResp := nBlockCols / nworkers

	var wg sync.WaitGroup
	wg.Add(nworkers)
	for w := 0; w < nworkers; w++ {
		w := w
		go func() {
			defer wg.Done()
			step := workerResp * w
			end := step + workerResp
			if w == nworkers-1 { // last worker has extra work
				end = nBlockCols
			}

			var b bitBlock
			for bc := step; bc < end; bc++ {
				for br := 0; br < nBlockRows; br++ {
					b.unravel(matrix, br, bc)
					b.transpose()
					b.ravel(trans, bc, br)
				}
			}
		}()
	}

	wg.Wait()

	return trans
}

// unravel loads the block at block row br and block column bc.
// Rows past the end of the matrix load as zero.
func (b *bitBlock) unravel(matrix [][]byte, br, bc int) {
	for r := 0; r < blockWidth; r++ {
		row := br*blockWidth + r
		if row >= len(matrix) {
			b[r] = 0
			continue
		}
		b[r] = loadWord(matrix[row], bc*8)
	}
}

// ravel writes the block into the transposed matrix, whose block
// row is br and block column bc. Rows past the end are skipped.
func (b *bitBlock) ravel(trans [][]byte, br, bc int) {
	for r := 0; r < blockWidth; r++ {
		row := br*blockWidth + r
		if row >= len(trans) {
			return
		}
		storeWord(trans[row], bc*8, b[r])
	}
}

func (b *bitBlock) swap(a, c int, mask uint64, width int) {
	t := (b[a] ^ (b[c] << width)) & mask
	b[a] ^= t
	b[c] ^= t >> width
}

// transpose performs an in-place bitwise transpose of the block.
func (b *bitBlock) transpose() {
	for _, lvl := range swapLevels {
		for i := 0; i < blockWidth; i++ {
			if i&lvl.width == 0 {
				b.swap(i, i+lvl.width, lvl.mask, lvl.width)
			}
		}
	}
}

// loadWord reads up to eight bytes of row starting at off. Missing
// bytes read as zero.
func loadWord(row []byte, off int) uint64 {
	if off+8 <= len(row) {
		return binary.LittleEndian.Uint64(row[off:])
	}

	var w uint64
	for i := off; i < len(row); i++ {
		w |= uint64(row[i]) << (8 * (i - off))
	}
	return w
}

// storeWord writes w into row at off, dropping bytes past the end.
func storeWord(row []byte, off int, w uint64) {
	if off+8 <= len(row) {
		binary.LittleEndian.PutUint64(row[off:], w)
		return
	}

	for i := off; i < len(row); i++ {
		row[i] = byte(w >> (8 * (i - off)))
	}
}
