// Package connectors holds the clients of the remote systems the application
// talks to. The mercadolivre subpackage implements the marketplace gateway
// ports: items, descriptions, categories, compatibilities and pictures.
package connectors
