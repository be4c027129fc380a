// Command adboard computes the ad revenue metric summary, drills into the
// ledger rows behind any cell and serves both over HTTP.
package main

func main() {
	Execute()
}
