package slcan

import "fmt"

// Channel commands understood by generic SLCAN adapters.
// Motor controllers with a native SLCAN port don't need them.
var (
	OpenCommand  = []byte("O\r")
	CloseCommand = []byte("C\r")
)

var bitrateCodes = map[int]byte{
	10000:   '0',
	20000:   '1',
	50000:   '2',
	100000:  '3',
	125000:  '4',
	250000:  '5',
	500000:  '6',
	800000:  '7',
	1000000: '8',
}

// BitrateCommand builds the "Sn" command selecting a standard bitrate.
func BitrateCommand(bitrate int) ([]byte, error) {
	code, ok := bitrateCodes[bitrate]
	if !ok {
		return nil, fmt.Errorf("unsupported bitrate %d", bitrate)
	}
	return []byte{'S', code, terminator}, nil
}
