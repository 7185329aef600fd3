// Example program demonstrating the gitversion library API.
//
// Run from the repo root:
//
//	go run ./example/
//
// With remote mode (set GITHUB_TOKEN first):
//
//	GITHUB_TOKEN=ghp_xxx go run ./example/
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/MyCarrier-DevOps/go-gitversion/pkg/sdk"
)

func main() {
	localVersion()
	memoizedVersion()

	if os.Getenv("GITHUB_TOKEN") != "" {
		remoteVersion()
	}
}

func localVersion() {
	result, err := sdk.Describe(sdk.LocalOptions{
		Path:    ".",
		Explain: true,
	})
	if err != nil {
		log.Fatalf("local describe failed: %v", err)
	}

	printResult("Local", result)
	fmt.Println(result.Explanation)
}

func memoizedVersion() {
	v, err := sdk.Version(context.Background(), ".", "")
	if err != nil {
		log.Fatalf("version failed: %v", err)
	}
	fmt.Printf("=== Memoized Version ===\n%s\n\n", v)
}

func remoteVersion() {
	result, err := sdk.DescribeRemote(sdk.RemoteOptions{
		Owner: "MyCarrier-DevOps",
		Repo:  "go-gitversion",
		Token: os.Getenv("GITHUB_TOKEN"),
		Ref:   "main",
	})
	if err != nil {
		log.Fatalf("remote describe failed: %v", err)
	}

	printResult("Remote", result)
}

func printResult(label string, result *sdk.Result) {
	fmt.Printf("=== %s Version ===\n", label)

	keys := make([]string, 0, len(result.Variables))
	for k := range result.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%-20s %s\n", k, result.Variables[k])
	}
	fmt.Println()
}
