package main

import (
	"bytes"
	"testing"
)

func TestRootCommandTree(t *testing.T) {
	t.Parallel()

	root := newRootCommand()
	for _, name := range []string{"serve", "ask", "agents"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("subcommand %q not registered: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("env") == nil {
		t.Fatal("expected persistent --env flag")
	}
	serve, _, _ := root.Find([]string{"serve"})
	if serve.Flags().Lookup("addr") == nil {
		t.Fatal("expected serve --addr flag")
	}
}

func TestAskRequiresQuery(t *testing.T) {
	t.Parallel()

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"ask"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for ask without a query")
	}
}
