// Package config loads the files reqdiff works from: stub definitions and
// request captures.
//
// Files are JSON or YAML, chosen by extension, and may hold a single
// document or an array of them. ${VAR} and ${VAR:-default} references are
// expanded before decoding. Glob patterns support "**" for recursive
// matching.
package config
