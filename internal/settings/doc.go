// Package settings resolves the server's own runtime settings. The bootstrap
// environment names the configuration files; the files, scoped environment
// variables and CLI flags then feed the configuration engine, and the server
// section is bound from it. Precedence: CLI flags > --set values > environment
// > configuration files > defaults.
package settings
