// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// exclusionms-audit dumps every ExclusionInterval record from a
// persisted store file (the format of internal/persist) as a JSON
// stream on stdout, for offline inspection of a saved exclusion list.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pgarrett-scripps/exclusionms-go/internal/persist"
)

func main() {
	path := flag.String("db", "", "specify the persisted store file to audit (required)")
	flag.Parse()
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	ivs, err := persist.Load(*path)
	if err != nil {
		log.Fatal(err)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, iv := range ivs {
		if err := enc.Encode(iv); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Fprintf(os.Stderr, "%d records\n", len(ivs))
}
