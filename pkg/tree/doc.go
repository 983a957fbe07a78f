// Package tree defines the contract between the visibility engine and the
// host that owns the navigation tree.
//
// The host renders folders and may rebuild or replace them at any time. The
// engine only reads folder paths and toggles one marker per folder:
//
//	Host ──Container(selector)──▶ Container ──Folders()──▶ []Node
//	  │                              │
//	  └─OnLayoutChange               └─Observe (one callback per mutation batch)
//
// Two hosts ship with the module: memtree, an in-memory DOM with
// asynchronous mutation delivery, and fstree, which exposes a directory tree
// and reports changes through fsnotify.
package tree
