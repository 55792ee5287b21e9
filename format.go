/*
 * Copyright (c) 2023. Monimoto Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 *  (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package occurrent

import (
	"github.com/cloudevents/sdk-go/v2/binding/format"
)

// EventFormat is a pluggable codec transforming a CloudEvent to and from a
// byte representation. Any CloudEvents SDK structured format satisfies it.
type EventFormat = format.Format

// JSONFormat is the default event format, the CloudEvents structured JSON
// encoding.
var JSONFormat EventFormat = format.JSON
