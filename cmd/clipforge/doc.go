// Command clipforge is the CLI for the clipforge daemon: submitting videos,
// inspecting job progress, maintaining the queue, and compiling caption
// scripts standalone.
package main
