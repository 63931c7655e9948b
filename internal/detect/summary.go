package detect

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

type Summary struct {
	Blocks         int
	ByType         map[string]int
	Lines          []string
	Words          int
	MeanConfidence float64 // over LINE blocks, 0 when there are none
}

func Summarize(blocks []types.Block) Summary {
	s := Summary{
		Blocks: len(blocks),
		ByType: map[string]int{},
	}

	var confSum float64
	var confN int
	for _, b := range blocks {
		s.ByType[string(b.BlockType)]++
		switch b.BlockType {
		case types.BlockTypeLine:
			s.Lines = append(s.Lines, aws.ToString(b.Text))
			if b.Confidence != nil {
				confSum += float64(*b.Confidence)
				confN++
			}
		case types.BlockTypeWord:
			s.Words++
		}
	}
	if confN > 0 {
		s.MeanConfidence = confSum / float64(confN)
	}
	return s
}
