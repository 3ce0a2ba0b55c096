package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortMethodCallsOrdersByNameThenObjectTypeThenObjectName(t *testing.T) {
	calls := []MethodCall{
		{MethodName: "b", ObjectName: "x"},
		{MethodName: "a", ObjectType: "Foo"},
		{MethodName: "a", ObjectName: "y"},
		{MethodName: "a"},
	}
	SortMethodCalls(calls)
	assert.Equal(t, []MethodCall{
		{MethodName: "a"},
		{MethodName: "a", ObjectName: "y"},
		{MethodName: "a", ObjectType: "Foo"},
		{MethodName: "b", ObjectName: "x"},
	}, calls)
}

func TestTrimQuotesAndSpaceIdempotent(t *testing.T) {
	cases := []string{
		`  "orders"  `,
		"`orders`",
		"[orders]",
		"'orders'",
		"orders",
		"",
	}
	for _, c := range cases {
		once := trimQuotesAndSpace(c)
		twice := trimQuotesAndSpace(once)
		assert.Equal(t, once, twice, "input %q", c)
	}
	assert.Equal(t, "orders", trimQuotesAndSpace(`  "orders"  `))
	assert.Equal(t, "orders", trimQuotesAndSpace("[orders]"))
}
