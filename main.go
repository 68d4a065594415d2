// Mahnwesen generates per-tenant dunning letters from a rent-ledger CSV
// export: Zahlungserinnerung, 1. Mahnung and 2. Mahnung as paginated PDF
// documents, with optional email dispatch and arrears statistics.
package main

import "mahnwesen/cmd"

func main() {
	cmd.Execute()
}
