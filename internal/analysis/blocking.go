package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MinBlocks is the smallest block count a blocking level may keep.
const MinBlocks = 4

var (
	ErrTooFewSamples = errors.New("analysis: too few samples")
	ErrConstant      = errors.New("analysis: series has zero variance")
)

type BlockLevel struct {
	BlockSize int
	Blocks    int
	StdErr    float64
}

type BlockingResult struct {
	Mean     float64
	Variance float64
	// NaiveErr assumes uncorrelated samples.
	NaiveErr float64
	// StdErr is the largest error over all levels.
	StdErr float64
	Levels []BlockLevel
}

// Blocking estimates the standard error of the mean of a correlated series
// by halving it into block averages until fewer than MinBlocks remain.
func Blocking(data []float64) (BlockingResult, error) {
	if len(data) < MinBlocks {
		return BlockingResult{}, ErrTooFewSamples
	}

	mean, variance := stat.MeanVariance(data, nil)
	res := BlockingResult{
		Mean:     mean,
		Variance: variance,
		NaiveErr: math.Sqrt(variance / float64(len(data))),
	}

	blocks := make([]float64, len(data))
	copy(blocks, data)
	size := 1
	for len(blocks) >= MinBlocks {
		_, v := stat.MeanVariance(blocks, nil)
		se := math.Sqrt(v / float64(len(blocks)))
		res.Levels = append(res.Levels, BlockLevel{BlockSize: size, Blocks: len(blocks), StdErr: se})
		if se > res.StdErr {
			res.StdErr = se
		}

		half := len(blocks) / 2
		for i := 0; i < half; i++ {
			blocks[i] = 0.5 * (blocks[2*i] + blocks[2*i+1])
		}
		blocks = blocks[:half]
		size *= 2
	}
	return res, nil
}
