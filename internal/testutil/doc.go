// Package testutil provides test helpers for erdpad.
//
// This package includes:
//   - Error assertion helpers for checking alerr codes
//   - Diagram fixtures shared across packages
//   - Temporary file helpers
//
// # Example Usage
//
//	func TestImport(t *testing.T) {
//	    g, err := codec.Import([]byte(testutil.OrdersCustomersJSON))
//	    testutil.AssertNoError(t, err)
//
//	    _, err = codec.Import([]byte(`{"tables": 1}`))
//	    testutil.AssertError(t, err, alerr.ErrDocumentInvalid)
//	}
package testutil
