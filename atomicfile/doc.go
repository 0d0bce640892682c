/*
Package atomicfile writes a file by writing a staging file and renaming
it over the destination, so that readers see either the old or the new
content, never a partial write.

The first error from Write, WriteLine or Close is sticky: later calls
return it, the staging file is removed and the destination stays as it
was. Close flushes, fsyncs the staging file, renames it and fsyncs the
destination directory.

Typical use:

	func rewrite(path string, lines []string) error {
		f, err := atomicfile.NewInDir(path, filepath.Join(filepath.Dir(path), "tmp"))
		if err != nil {
			return err
		}
		// removes the staging file if we return before Close()
		defer f.RemoveIfNotClosed()

		for _, l := range lines {
			if err = f.WriteLine(l); err != nil {
				return err
			}
		}
		return f.Close()
	}

To learn more see https://presstige.io/p/atomicfile-22143bf788b542fda2262ca7aee57ae4
*/
package atomicfile
