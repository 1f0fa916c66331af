// Package config holds the toolkit configuration: the byte order used to decode
// integers and pointers, the array count guard, and the logging level.
//
// Configuration is plain YAML:
//
//	byte_order: big
//	max_array_count: 4096
//	enforce_max_count: fail
//	logging:
//	  level: debug
//
// Keys that are omitted keep the values of DefaultConfig.
package config
