// Package swecodec serializes and deserializes the text-matrix body of SWE
// data arrays: element-type derivation from observation values, block
// building with no-data substitution, and token parsing back into typed
// observation values. Producer and consumer of an array must agree on the
// separators carried in its encoding descriptor.
package swecodec
