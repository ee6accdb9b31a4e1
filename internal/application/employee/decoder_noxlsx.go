//go:build noxlsx

package employee

var defaultSpreadsheetReader SpreadsheetReader
