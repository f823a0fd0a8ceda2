package buffer

import "github.com/ehrlich-b/raleighsl/internal/constants"

const (
	chunkSize    = constants.ChunkSize
	dbufNodeSize = constants.DBufNodeSize
)
