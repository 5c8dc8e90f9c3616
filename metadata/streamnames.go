package metadata

// StreamName is the archive stream every database's Metadata lives in.
const StreamName = "metadata"

// SampleNamesStreamName is the archive stream holding the optional,
// length-prefixed list of per-sample names. It is only written when a
// writer is given at least one name; readers treat its absence as "no
// sample names recorded".
const SampleNamesStreamName = "samples_names"
