package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "profile":
		return profileTemplate, nil
	case "messages":
		return messagesTemplate, nil
	case "values":
		return valuesTemplate, nil
	default:
		return "", fmt.Errorf("unknown template kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const profileTemplate = `[codec]
endian = "little"
length = "u16"
length_endian = "big"

[frame]
max_auth_bytes = 65535
max_payload_bytes = 8388608
magic = 2982207168
version = 1

[log]
level = "info"
`

const messagesTemplate = `[[message]]
type = "hello"
id = 1

  [[message.field]]
  id = 1
  type = "string"
  value = "node-a"

  [[message.field]]
  id = 2
  type = "u16"
  value = 1

[[message]]
type = "sample"
id = 2
auth = "token-a"

  [[message.field]]
  id = 100
  type = "string"
  value = "cpu.load"

  [[message.field]]
  id = 101
  type = "u64"
  value = 1700000000000

  [[message.field]]
  id = 102
  type = "bytes"
  value = "3f800000"
`

const valuesTemplate = `[[value]]
type = "u16"
value = 513

[[value]]
type = "cstring"
value = "hello"

[[value]]
type = "f64"
value = 1.5

# without a length field in the profile, bytes consume the rest of the input
[[value]]
type = "bytes"
value = "deadbeef"
`
