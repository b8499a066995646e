// Package connectors holds corpus sources: implementations of the
// driven.CorpusSource port that list and watch the files an ingestion run
// reads. The filesystem connector is the only source today.
package connectors
