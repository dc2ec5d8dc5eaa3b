package db

var EnsureForeignKeysEnabledDSN = ensureForeignKeysEnabledDSN
