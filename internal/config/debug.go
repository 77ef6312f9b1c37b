package config

import "os"

func IsDebug() bool {
	return os.Getenv("RELEVO_DEBUG") == "1"
}
