package detect

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LoadNames reads a class-names file with one name per line, in class id
// order (the coco.names layout). Trailing whitespace is trimmed; blank lines
// keep their slot so ids stay aligned.
func LoadNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open class names")
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		names = append(names, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read class names")
	}
	return names, nil
}
