// Package scene reads composition trees from YAML.
//
// A scene file declares the project settings, the animated variables and
// a tree of nodes. Every node is a mapping with exactly one key naming its
// kind:
//
//	variables:
//	  opacity: 0
//	nodes:
//	  - sequence:
//	      children:
//	        - clip:
//	            label: intro
//	            children:
//	              - voice: {text: "hello", subtitle: {position: top}}
//	              - animate:
//	                  name: fade-in
//	                  script:
//	                    - move: {var: opacity, to: 1, frames: 15}
//	              - sample: {variable: opacity}
//
// Animation scripts are instruction lists (sleep, move, parallel) that
// Compile turns into compose.Script closures.
package scene
