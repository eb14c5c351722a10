package litestore

const (
	fmtBeginTxError  = "begin transaction: %w"
	fmtCommitTxError = "commit transaction: %w"
)
