// Command ringdemo walks through the consistent hashing contract: it places
// five servers on a ring, routes a batch of keys, removes one server, and
// prints which keys relocated.
package main

import (
	"fmt"

	"github.com/ringkit/hashring"
)

func main() {
	ring, err := hashring.New(hashring.Config{Replicas: 10})
	if err != nil {
		panic(err)
	}

	for i := 1; i <= 5; i++ {
		ring.AddServer(fmt.Sprintf("s%d", i))
	}
	fmt.Printf("servers: %v\n\n", ring.Servers())

	keys := make([]string, 20)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i+1)
	}

	owners := make(map[string]string, len(keys))
	for _, key := range keys {
		owner, err := ring.Lookup(key)
		if err != nil {
			panic(err)
		}
		owners[key] = owner
		fmt.Printf("%-4s -> %s\n", key, owner)
	}

	fmt.Println("\nremoving s5")
	ring.RemoveServer("s5")

	var moved int
	for _, key := range keys {
		owner, err := ring.Lookup(key)
		if err != nil {
			panic(err)
		}
		if owner != owners[key] {
			moved++
			fmt.Printf("%-4s moved to %s from %s\n", key, owner, owners[key])
		}
	}
	fmt.Printf("\n%d of %d keys relocated\n", moved, len(keys))
}
