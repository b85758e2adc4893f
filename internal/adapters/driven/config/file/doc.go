// Package file persists analysis settings as a TOML file in the user's
// repolens directory. Settings hold tuning defaults only; credentials
// are read from the environment and never written to disk.
package file
