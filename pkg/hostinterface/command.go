package hostinterface

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"unsafe"
)

// advboats_version writes the library version into output.
//
//export advboats_version
func advboats_version(output *C.char, outputsize C.size_t) {
	reply(Version(), output, outputsize)
}

// advboats_command runs a text command, e.g. ":BOAT:UPDATE:" with its
// arguments, and writes the JSON reply into output.
//
//export advboats_command
func advboats_command(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	if input == nil {
		reply(formatResponse(nil, ErrNotInitialized), output, outputsize)
		return
	}
	reply(Execute(C.GoString(input), parseArgsFromC(argv, argc)), output, outputsize)
}

// parseArgsFromC converts C argv array to Go string slice
func parseArgsFromC(argv **C.char, argc C.int) []string {
	if argv == nil || argc <= 0 {
		return nil
	}
	ptrs := unsafe.Slice(argv, int(argc))
	data := make([]string, 0, len(ptrs))
	for _, p := range ptrs {
		data = append(data, C.GoString(p))
	}
	return data
}

// reply copies response into the host buffer, NUL terminated.
func reply(response string, output *C.char, outputsize C.size_t) {
	if output == nil || outputsize == 0 {
		return
	}
	response = truncate(response, int(outputsize))
	buf := unsafe.Slice((*byte)(unsafe.Pointer(output)), int(outputsize))
	n := copy(buf, response)
	buf[n] = 0
}
