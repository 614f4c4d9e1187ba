// Package reader loads spreadsheet files into in-memory tables.
//
// A Source is a file with one or more named sheets. Excel workbooks (xlsx)
// are read with github.com/xuri/excelize/v2 and may hold many sheets;
// parquet files are read with github.com/parquet-go/parquet-go and expose a
// single sheet named after the file. Either kind may be stored gzip, bzip2
// or xz compressed.
//
// # Basic Usage
//
//	src, err := reader.Open("deliverability.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer src.Close()
//
//	fmt.Println(src.SheetNames())
//
//	table, err := src.ReadSheet("Failure Details")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, row := range table.Head(5) {
//	    fmt.Println(row)
//	}
//
// # Column Types
//
// Sheets have no declared types. Each column is loaded as the narrowest
// type every non-blank cell converts to: number, then timestamp, else text.
// Blank cells become nil. Excel date cells are stored as serial numbers
// with a date format; those are converted to timestamps.
//
// Parquet columns take their type from the decoded values: integer,
// number, boolean, timestamp or text.
//
// # Headers
//
// The first sheet row is the header. Blank header cells are named
// Unnamed_A, Unnamed_B, ... and repeated names get .1, .2 suffixes.
package reader
