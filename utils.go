package fas

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"
)

func JsonPrint(tag string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%s: error marshaling: %v\n", tag, err)
		return
	}
	fmt.Printf("%s: %s\n", tag, string(b))
}

// MailKey hashes the parts of a message that make it a duplicate. Messages
// for different events differ in at even when their text is the same.
func MailKey(to, subject, body string, at time.Time) string {
	h := xxh3.New()
	for _, part := range []string{to, subject, body, strconv.FormatInt(at.UnixNano(), 10)} {
		h.WriteString(part)
		h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
