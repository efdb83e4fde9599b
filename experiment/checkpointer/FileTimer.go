package checkpointer

import (
	"fmt"
	"time"
)

// FileTimer returns a function generating filenames stamped with the
// time at which they are generated, as nanoseconds since the Unix
// epoch. The filename parameter is the full filename with its path,
// while the extension parameter determines the file extension.
func FileTimer(filename, extension string) func() string {
	return func() string {
		stamp := time.Now().UnixNano()
		return fmt.Sprintf("%v-%v%v", filename, stamp, extension)
	}
}
