//
// Copyright 2024 - 2026 Flight-HAL Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package probe

import "golang.org/x/sys/unix"

// fsTypeTable maps a statfs magic number to a human-readable fs name, the
// same lookup-table idiom as the teacher's unixFsNameTable, trimmed to the
// filesystems relevant to an IO-feature probe.
var fsTypeTable = map[int64]string{
	unix.EXT4_SUPER_MAGIC:      "ext4",
	unix.XFS_SUPER_MAGIC:       "xfs",
	unix.BTRFS_SUPER_MAGIC:     "btrfs",
	unix.F2FS_SUPER_MAGIC:      "f2fs",
	unix.TMPFS_MAGIC:           "tmpfs",
	unix.OVERLAYFS_SUPER_MAGIC: "overlayfs",
	unix.NFS_SUPER_MAGIC:       "nfs",
	unix.ISOFS_SUPER_MAGIC:     "isofs",
	unix.SQUASHFS_MAGIC:        "squashfs",
}

func fsTypeName(magic int64) string {
	if name, ok := fsTypeTable[magic]; ok {
		return name
	}
	return "unknown"
}
