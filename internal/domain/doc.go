// Package domain contains the core value types shared across services:
// books, campaign descriptors, ad groups, product ads, and targeting
// entities, plus the closed enumerations that drive strategy selection.
//
// Types here are plain data. Business logic lives in service/, persistence
// in repository/postgres/, and the advertising-platform contract in
// amazonads/.
package domain
