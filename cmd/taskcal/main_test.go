package main

import (
	"context"
	"testing"

	"github.com/Binwin6724/todo-calender-be/mem"
	"github.com/Binwin6724/todo-calender-be/service"
)

func TestOpenStoresRequiresDatabase(t *testing.T) {
	svc := &service.Service{}
	if _, err := openStores(context.Background(), svc, "", "todo-calendar"); err != errNoDatabase {
		t.Fatalf("openStores(\"\") err = %v, want errNoDatabase", err)
	}
	if svc.TaskStore != nil {
		t.Fatal("stores installed without a database URL")
	}
}

func TestOpenStoresUnknownScheme(t *testing.T) {
	svc := &service.Service{}
	if _, err := openStores(context.Background(), svc, "ftp://example.com/db", "todo-calendar"); err == nil {
		t.Fatal("openStores(ftp://) err = nil")
	}
}

func TestOpenStoresMemory(t *testing.T) {
	svc := &service.Service{}
	closeDB, err := openStores(context.Background(), svc, "memory://", "todo-calendar")
	if err != nil {
		t.Fatal(err)
	}
	defer closeDB()

	if _, ok := svc.TaskStore.(*mem.TaskStore); !ok {
		t.Fatalf("TaskStore = %T, want *mem.TaskStore", svc.TaskStore)
	}
	if svc.Ping != nil {
		t.Fatal("memory backend has a Ping")
	}
}
